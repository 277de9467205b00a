// Package config holds websift's configuration: global defaults populated
// from CLI flags, validation with sentinel errors, and the optional .websift
// YAML file carrying per-site fetch settings (headers, cookies, delays).
//
// Configuration is passed explicitly into the components that need it;
// there is no process-wide configuration singleton.
package config
