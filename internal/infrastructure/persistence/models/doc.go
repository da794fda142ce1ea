// Package models contains the GORM persistence models of the storefront.
// Domain types stay free of ORM concerns; each model converts to and from
// its domain counterpart with ToDomain and FromDomain.
//
//   - base.go: shared id, timestamp, version and session columns
//   - cart.go: carts and cart_lines
//   - order.go: orders and order_items
//   - identity.go: users
//   - prescription.go: prescription_uploads
//   - preference.go: client_preferences
package models
