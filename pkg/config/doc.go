/*
Package config loads the configuration of a mirror run.

	            +-------------+
	            |   Config    |
	            | (Settings)  |
	            +------+------+
	                   |
	   +--------+------+-----+--------+
	   |        |            |        |
	+--+---+ +--+---+    +---+--+ +---+--+
	| YAML | | HCL  |    | TOML | | JSON |
	+------+ +------+    +------+ +------+

🎯 Purpose:
- Reads the run configuration in any registered format
- Validates it and fills in defaults
- Finds a default config file when none is named

🔄 Flow:
 1. Discover or take the config path
 2. Read picks a Parser by extension
 3. Command line flags are layered on top
 4. Validate normalizes remote, prefix and working dir

🔍 Example:

	cfg, err := config.Load(ctx, ".krep.yaml")
	if err != nil {
		return err
	}
	fmt.Println(cfg) // . -> git://review.example.com/aosp/
*/
package config
