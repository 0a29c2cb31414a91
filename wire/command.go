package wire

import "fmt"

// CommandKind tags which of the twelve request variants a CommandRequest
// carries. Values match the field numbers of the CommandRequest oneof -
// these numbers are load-bearing for wire compatibility.
type CommandKind uint8

const (
	CmdHget        CommandKind = 1
	CmdHgetall     CommandKind = 2
	CmdHmget       CommandKind = 3
	CmdHset        CommandKind = 4
	CmdHmset       CommandKind = 5
	CmdHdel        CommandKind = 6
	CmdHmdel       CommandKind = 7
	CmdHexist      CommandKind = 8
	CmdHmexist     CommandKind = 9
	CmdSubscribe   CommandKind = 10
	CmdUnsubscribe CommandKind = 11
	CmdPublish     CommandKind = 12
)

func (k CommandKind) String() string {
	switch k {
	case CmdHget:
		return "Hget"
	case CmdHgetall:
		return "Hgetall"
	case CmdHmget:
		return "Hmget"
	case CmdHset:
		return "Hset"
	case CmdHmset:
		return "Hmset"
	case CmdHdel:
		return "Hdel"
	case CmdHmdel:
		return "Hmdel"
	case CmdHexist:
		return "Hexist"
	case CmdHmexist:
		return "Hmexist"
	case CmdSubscribe:
		return "Subscribe"
	case CmdUnsubscribe:
		return "Unsubscribe"
	case CmdPublish:
		return "Publish"
	default:
		return "Unknown"
	}
}

// CommandRequest is the decoded form of one client request. Only the
// fields relevant to Kind are populated; the others are left at their zero
// value. This mirrors the teacher's flags-byte message shape: all twelve
// variants share one flat struct of optional fields, tagged by Kind.
type CommandRequest struct {
	Kind CommandKind

	// Table: every H* command. Key: Hget, Hdel, Hexist. Pair: Hset.
	Table string
	Key   string
	Pair  KvPair

	// Hmget, Hmdel, Hmexist
	Keys []string

	// Hmset
	Pairs []KvPair

	// Subscribe, Unsubscribe, Publish
	Topic string

	// Unsubscribe
	SubscriptionID uint32

	// Publish
	Values []Value
}

// NewHget builds an Hget request.
func NewHget(table, key string) CommandRequest {
	return CommandRequest{Kind: CmdHget, Table: table, Key: key}
}

// NewHgetall builds an Hgetall request.
func NewHgetall(table string) CommandRequest {
	return CommandRequest{Kind: CmdHgetall, Table: table}
}

// NewHmget builds an Hmget request.
func NewHmget(table string, keys []string) CommandRequest {
	return CommandRequest{Kind: CmdHmget, Table: table, Keys: keys}
}

// NewHset builds an Hset request.
func NewHset(table string, pair KvPair) CommandRequest {
	return CommandRequest{Kind: CmdHset, Table: table, Pair: pair}
}

// NewHmset builds an Hmset request.
func NewHmset(table string, pairs []KvPair) CommandRequest {
	return CommandRequest{Kind: CmdHmset, Table: table, Pairs: pairs}
}

// NewHdel builds an Hdel request.
func NewHdel(table, key string) CommandRequest {
	return CommandRequest{Kind: CmdHdel, Table: table, Key: key}
}

// NewHmdel builds an Hmdel request.
func NewHmdel(table string, keys []string) CommandRequest {
	return CommandRequest{Kind: CmdHmdel, Table: table, Keys: keys}
}

// NewHexist builds an Hexist request.
func NewHexist(table, key string) CommandRequest {
	return CommandRequest{Kind: CmdHexist, Table: table, Key: key}
}

// NewHmexist builds an Hmexist request.
func NewHmexist(table string, keys []string) CommandRequest {
	return CommandRequest{Kind: CmdHmexist, Table: table, Keys: keys}
}

// NewSubscribe builds a Subscribe request.
func NewSubscribe(topic string) CommandRequest {
	return CommandRequest{Kind: CmdSubscribe, Topic: topic}
}

// NewUnsubscribe builds an Unsubscribe request.
func NewUnsubscribe(topic string, id uint32) CommandRequest {
	return CommandRequest{Kind: CmdUnsubscribe, Topic: topic, SubscriptionID: id}
}

// NewPublish builds a Publish request.
func NewPublish(topic string, values []Value) CommandRequest {
	return CommandRequest{Kind: CmdPublish, Topic: topic, Values: values}
}

// CommandResponse is (status, message, values, pairs) per the wire schema.
// message is empty on success.
type CommandResponse struct {
	Status  uint32
	Message string
	Values  []Value
	Pairs   []KvPair
}

// Ok builds a 200 response carrying values and/or pairs.
func Ok(values []Value, pairs []KvPair) CommandResponse {
	return CommandResponse{Status: 200, Values: values, Pairs: pairs}
}

// Errorf builds an error response with the given status and message.
func Errorf(status uint32, format string, args ...any) CommandResponse {
	return CommandResponse{Status: status, Message: fmt.Sprintf(format, args...)}
}
