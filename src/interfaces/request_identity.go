package interfaces

// -----------------------------------------------------------------------------

// IRequestIdentity decides how outbound scraper and quote requests present
// themselves: which proxy they leave through and which browser they claim.
type IRequestIdentity interface {
	// Proxy is the proxy URL in use, empty for direct connections.
	Proxy() string

	// NextProxy moves to the following proxy. ok is false when there is
	// nothing to rotate to.
	NextProxy() (proxy string, ok bool)

	UserAgent() string
}
