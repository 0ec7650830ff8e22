package policy

// Op classifies a proposed write.
type Op int

// Write operations in lifecycle order.
const (
	OpCreate Op = iota
	OpUpdate
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Classify determines the operation and the effective document type for a
// proposed revision. A tombstone may omit its own type field, so deletes
// resolve the type from the prior revision when one exists. Classification
// is total: every (doc, oldDoc) pair yields exactly one operation.
func Classify(doc, oldDoc *Document) (Op, string) {
	if doc.Deleted {
		typ := doc.Type
		if oldDoc != nil && oldDoc.Type != "" {
			typ = oldDoc.Type
		}
		return OpDelete, typ
	}
	if oldDoc == nil {
		return OpCreate, doc.Type
	}
	return OpUpdate, doc.Type
}
