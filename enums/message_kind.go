package enums

type MessageKind string

const (
	MessageKindVersion   MessageKind = "version"
	MessageKindDirectory MessageKind = "directory"
	MessageKindURL       MessageKind = "url"
	MessageKindQueue     MessageKind = "queue"
)
