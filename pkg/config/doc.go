/*
Package config loads robowatch job files.

	            +-------------+
	            |   Config    |
	            |   (Jobs)    |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+-----+ +----+----+ +-----+-----+
	|   YAML    | |   HCL   | |   JSON    |
	|  Parser   | | Parser  | |  Parser   |
	+-----------+ +---------+ +-----------+

🎯 Purpose:
- Pick a parser by file extension
- Apply ROBOWATCH_* environment overrides
- Fill defaults and reject jobs robocopy would choke on

🔍 Example (YAML):

	poll_interval: 500ms
	parallel: 2
	jobs:
	  - name: photos
	    source: C:\Users\me\Pictures
	    destination: E:\backup\pictures
	    mirror: true
	    exclude_files: ["*.tmp"]

🔍 Example (HCL, with the env variable):

	parallel = 2

	job "home" {
	  source      = env.USERPROFILE
	  destination = "E:\\backup\\home"
	  retries     = 3
	}
*/
package config
