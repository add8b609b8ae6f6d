// Package config loads and validates the nameres CLI configuration.
//
// Configuration lives in a YAML file, by default ~/.nameres/config.yaml.
// When the file is absent Load returns Default(): the network resolver with
// system name servers, a 2 s per-attempt timeout, and one retry.
//
// # File format
//
//	resolver:
//	  mode: dns              # "dns" or "hostfile"
//	  nameservers:           # empty means use /etc/resolv.conf
//	    - 1.1.1.1:53
//	    - 8.8.8.8:53
//	  search_domains:
//	    - corp.example.org
//	  timeout: 2s
//	  retries: 1
//	  ipv4_only: false
//	  hosts_file: ""         # hostfile mode: empty means $HOST_ALIASES or /etc/hosts
//
// # Loading and saving
//
//	cfg, err := config.New().Load()
//	if err != nil {
//		log.Fatalf("config error: %v", err)
//	}
//
// Save writes a validated configuration back to the same path; "nameres
// config init" uses it to persist Default() for editing.
//
// Providers take an injected filesys.ReadWriteFS so tests can run against
// an in-memory filesystem. Validation rejects unknown modes and
// non-positive timeouts with ErrInvalidConfig.
package config
