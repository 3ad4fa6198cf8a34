package models

// AWSCredentials are static access keys supplied by the user instead of the
// SDK default credential chain.
type AWSCredentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// AzureCredentials identify a service principal used instead of the default
// Azure credential chain.
type AzureCredentials struct {
	TenantID     string
	ClientID     string
	ClientSecret string
}

// Complete reports whether both key halves are present.
func (c AWSCredentials) Complete() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// Complete reports whether every service principal field is present.
func (c AzureCredentials) Complete() bool {
	return c.TenantID != "" && c.ClientID != "" && c.ClientSecret != ""
}
