// Package hcl provides the concrete HCL implementation of the config.Loader
// interface. It is responsible for file discovery, parsing, and translating
// top-level settings and `run` blocks into the format-agnostic sweep model.
package hcl
