package enums

type ErrorKind string

const (
	ErrorKindExtraction     ErrorKind = "extraction"
	ErrorKindHTTP           ErrorKind = "http"
	ErrorKindNotFound       ErrorKind = "not-found"
	ErrorKindAuthentication ErrorKind = "authentication"
	ErrorKindAuthorization  ErrorKind = "authorization"
	ErrorKindAuthRequired   ErrorKind = "auth-required"
	ErrorKindInput          ErrorKind = "input"
	ErrorKindNoExtractor    ErrorKind = "no-extractor"
)
