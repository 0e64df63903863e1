// Package security holds the admin API authentication of the placement
// service. See package auth.
package security
