package model

// FrameType tags a StreamFrame
type FrameType string

const (
	FrameText       FrameType = "text"
	FrameProperties FrameType = "properties"
	FrameError      FrameType = "error"
)

// StreamFrame is one unit of the outbound chat stream
type StreamFrame struct {
	Type       FrameType
	Content    string
	Properties []PropertySummary
}

func TextFrame(content string) StreamFrame {
	return StreamFrame{Type: FrameText, Content: content}
}

func ErrorFrame(message string) StreamFrame {
	return StreamFrame{Type: FrameError, Content: message}
}

func PropertiesFrame(properties []PropertySummary) StreamFrame {
	if properties == nil {
		properties = []PropertySummary{}
	}
	return StreamFrame{Type: FrameProperties, Properties: properties}
}
