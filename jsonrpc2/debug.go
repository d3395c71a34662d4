package jsonrpc2

import "github.com/vipnode/remoting/internal/pretty"

// debugMaxLen caps how much of each message is logged.
const debugMaxLen = 2048

// DebugCodec wraps a codec and logs every message read (<-) and written (->)
// with the given label.
func DebugCodec(label string, codec Codec) Codec {
	return &debugCodec{
		Codec: codec,
		label: label,
	}
}

type debugCodec struct {
	Codec
	label string
}

func (codec *debugCodec) ReadMessage() (*Message, error) {
	msg, err := codec.Codec.ReadMessage()
	if err != nil {
		logger.Printf("%s <- error: %s", codec.label, err)
		return msg, err
	}
	logger.Printf("%s <- %s", codec.label, pretty.Abbrev(msg.String(), debugMaxLen))
	return msg, nil
}

func (codec *debugCodec) WriteMessage(msg *Message) error {
	logger.Printf("%s -> %s", codec.label, pretty.Abbrev(msg.String(), debugMaxLen))
	return codec.Codec.WriteMessage(msg)
}
