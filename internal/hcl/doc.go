// Package hcl implements the config.Loader and config.Converter interfaces
// for HCL plan files and module manifests. It is the only package that
// touches hclparse/gohcl directly; everything downstream consumes the
// format-agnostic config model.
package hcl
