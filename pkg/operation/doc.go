/*
Package operation imports a git-repo mirror into a remote server.

	+-------------+     +-------------+
	|  Manifest   | or  |  Scan the   |
	|  projects   |     |  mirror dir |
	+------+------+     +------+------+
	       |                   |
	       +---------+---------+
	                 |
	          +------+------+
	          |    Plan     |
	          | p,project   |
	          +------+------+
	                 |
	          +------+------+
	          |    Push     |
	          | b,branch    |
	          | t,tag       |
	          +-------------+

🎯 Purpose:
- Lists the projects of a mirror
- Filters and renames them with the pattern store
- Pushes heads and tags with bounded concurrency

🔄 Flow:
 1. Sources come from the manifest, or from scanning the working dir
 2. A project whose <name>.git is missing is skipped
 3. Store.Match("p,project", name) filters, Store.Replace renames
 4. Heads and tags are listed with git for-each-ref, filtered and renamed
    with the branch and tag categories, and pushed in one git push each
 5. Every project is reported through log.Reporter
*/
package operation
