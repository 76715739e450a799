// Package config provides configuration management for recipecrawl.
//
// Configuration comes from three sources, in increasing priority:
//  1. Built-in defaults (documented constants in this package)
//  2. The YAML configuration file (.recipecrawl), which supplies seed
//     domains and the classifier term lists
//  3. CLI flags parsed by the cmd package
//
// The resulting Config is immutable for the duration of a crawl run: it is
// built once at process start, validated, and passed by value through the
// application via dependency injection rather than global state.
package config
