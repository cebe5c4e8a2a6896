/*
Package pattern classifies and rewrites project, branch and tag names with
category based rules.

	            +-------------+
	            |    Store    |
	            | (categories)|
	            +------+------+
	                   |
	      +------------+------------+
	      |                         |
	+-----+-----+            +------+------+
	|   Item    |            | Definition  |
	| inc/exc/~ |            | file loader |
	+-----------+            +-------------+

🎯 Inline grammar:

	CATEGORY:[NAME@]PATTERN[,PATTERN...]

	PATTERN  regex        include
	         !regex       exclude
	         ~old~new~    substitution, stops the rewrite pipeline
	         =old=new=    substitution, lets later categories rewrite again

A category written as CATEGORY-rp, CATEGORY-replace or CATEGORY-replacement
shares the bucket of CATEGORY. CATEGORY-ex and CATEGORY-exclude share it too
and swap the includes and excludes of that string.

🔍 Resolution of (category, name):
 1. an item registered under exactly name
 2. the first named item, in insertion order, whose name matches as a regex
 3. the category default, the item registered without a name

Lookups that find nothing fall back to permissive defaults: Match accepts,
Replace leaves the value unchanged.

📂 Definition files (XML, YAML, JSON, TOML, HCL) declare groups of entries;
see ParseFile.

	<patterns category="project">
	  <pattern value="^platform/"/>
	  <exclude-pattern value="/test$"/>
	  <replace-pattern value="^platform/" replace="aosp/"/>
	</patterns>
*/
package pattern
