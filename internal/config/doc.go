// Package config provides configuration parsing for vdom projects.
//
// The configuration is stored in vdom.json at the project root. It is read
// by the vdom command for rendering, diffing and the preview server.
//
// # Configuration File Structure
//
//	{
//	  "render": {
//	    "sync": false,
//	    "frameInterval": "16ms",
//	    "passiveEvents": ["scroll", "touchstart"],
//	    "diagnostics": "warn"
//	  },
//	  "preview": {
//	    "host": "localhost",
//	    "port": 3100,
//	    "tree": "tree.yaml",
//	    "watch": ["**/*.yaml"],
//	    "ignore": [".git/**"],
//	    "debounce": "100ms"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "vdom"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Preview:", cfg.PreviewURL())
package config
