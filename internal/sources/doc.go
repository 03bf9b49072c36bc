// Package sources reads the raw key/value tiers consumed by the settings
// resolver: dotenv files, terraform.tfvars and the process environment.
// Loaders never write anything and never interpret values beyond their file
// format.
package sources
