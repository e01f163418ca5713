/*
Package config resolves the feedframe configuration.

	            +-------------+
	            |   Config    |
	            | (resolved)  |
	            +------+------+
	                   |
	   +-------+-------+-------+--------+
	   |       |       |       |        |
	+--+--+ +--+--+ +--+--+ +--+---+ +--+--+
	| def | | YAML| | JSON| |  HCL | | env |
	+-----+ +-----+ +-----+ +------+ +-----+

🎯 Purpose:
- Provides built-in defaults for every folder, timeout and frame setting
- Parses optional config files through a registry of format parsers
- Applies .env and process environment overrides (FEEDS_FOLDER, BASE_URL, ...)
- Validates the result before any stage runs

🔄 Flow:
1. Default(root)
2. LoadFile + File.ApplyTo, when a config file is given
3. ApplyEnv with .env merged under the process environment
4. Validate

🔍 Example:

	cfg, err := config.Load(ctx, config.LoadOptions{Path: "feedframe.yaml"})
	if err != nil {
		return err
	}
	client := remote.NewClient(remote.WithRetryPolicy(cfg.FeedPolicy()))

An HCL file can reference the environment:

	base_url = "https://${env.CDN_HOST}/new_images"

	frame {
	  canvas_margin = 40
	  canvas_fill   = "#ffffff"
	}
*/
package config
