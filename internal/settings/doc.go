// Package settings resolves the configuration shared by every Lambda function
// from five sources with precedence: explicit overrides > dotenv files >
// environment variables > terraform.tfvars > defaults. The result is validated
// once, cannot be changed afterwards, and renders a diagnostic dump in which
// secrets are replaced by the name of the source that supplied them.
package settings
