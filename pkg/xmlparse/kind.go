package xmlparse

// Kind identifies the kind of an Event.
type Kind byte

const (
	KindNone Kind = iota
	KindOpenTagName
	KindAttribute
	KindOpenTagEnd
	KindText
	KindComment
	KindCDATA
	KindProcInst
	KindCloseTag
	KindEOF
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindOpenTagName:
		return "OpenTagName"
	case KindAttribute:
		return "Attribute"
	case KindOpenTagEnd:
		return "OpenTagEnd"
	case KindText:
		return "Text"
	case KindComment:
		return "Comment"
	case KindCDATA:
		return "CDATA"
	case KindProcInst:
		return "ProcInst"
	case KindCloseTag:
		return "CloseTag"
	case KindEOF:
		return "EOF"
	default:
		return "Unknown"
	}
}

// State is the tokenizer state between two calls to Next.
type State byte

const (
	StateContent State = iota
	StateTagOpenStart
	StateTagName
	StateAttributeName
	StateAttributeValue
	StateEndTagName
	StateComment
	StateCDATA
	StateProcessingInstruction
	StateXMLDeclaration
)

func (s State) String() string {
	switch s {
	case StateContent:
		return "Content"
	case StateTagOpenStart:
		return "TagOpenStart"
	case StateTagName:
		return "TagName"
	case StateAttributeName:
		return "AttributeName"
	case StateAttributeValue:
		return "AttributeValue"
	case StateEndTagName:
		return "EndTagName"
	case StateComment:
		return "Comment"
	case StateCDATA:
		return "CDATA"
	case StateProcessingInstruction:
		return "ProcessingInstruction"
	case StateXMLDeclaration:
		return "XMLDeclaration"
	default:
		return "Unknown"
	}
}
