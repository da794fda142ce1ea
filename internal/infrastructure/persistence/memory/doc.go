// Package memory provides in-process implementations of the storefront
// repositories. They back the "memory" database driver used in development
// and tests, and follow the same version and not-found rules as the GORM
// repositories.
package memory
