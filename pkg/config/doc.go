// Package config loads the tb user configuration.
//
// 	            +-------------+
// 	            |   Config    |
// 	            | (Settings)  |
// 	            +------+------+
// 	                   |
// 	      +------------+------------+
// 	      |            |            |
// 	+-----+----+ +-----+----+ +-----+----+
// 	|   HCL    | |   YAML   | |   JSON   |
// 	|  Parser  | |  Parser  | |  Parser  |
// 	+----------+ +----------+ +----------+
//
// 🎯 Purpose:
// - Finds config.{hcl,yaml,yml,json} under $XDG_CONFIG_HOME/tb
// - Parses it with the parser registered for its extension
// - Validates values and fills in defaults
// - Computes the template storage root
//
// 🔧 Fields:
// - storage: storage root override ("~" is expanded)
// - concurrency: parallel copy limit, 1 to 1024, default 16
// - exclude: glob patterns added to every save
// - preserve_last_dir: default for save --preserve-last-dir
//
// 🔍 Example (HCL):
//
// 	storage           = "${home}/templates"
// 	concurrency       = 8
// 	exclude           = ["**/.DS_Store", "node_modules"]
// 	preserve_last_dir = true
//
// HCL expressions can read env.<NAME> and home.
package config
