// Package config defines the format-agnostic model of a sweep: a set of MISMIP
// experiment runs sharing initials, executable and thickness profile, along
// with the Loader interface implemented by the concrete file formats.
//
// The `config.Sweep` is the single source of truth for the `app` package.
// Concrete loaders, such as for HCL and YAML, are provided in separate
// packages.
package config
