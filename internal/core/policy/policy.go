// Package policy implements the per-write admission policy for the
// task-list application: it classifies each proposed document mutation,
// enforces who may perform it, validates the resulting revision, and
// declares the channels and access grants the write establishes.
//
// Every evaluation is a pure, synchronous pass over the proposed revision,
// the prior accepted revision, and the resolved principal. The engine holds
// no state across evaluations and performs no I/O beyond an operational log
// record for unrecognized document types.
package policy

import "github.com/rs/zerolog"

// Engine evaluates proposed writes against the per-type rule table.
type Engine struct {
	rules map[string]ruleSet
	log   zerolog.Logger
}

// NewEngine creates an engine with the built-in task-list rule table.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		rules: defaultRules(),
		log:   log,
	}
}

// Evaluate decides a single write attempt. oldDoc is nil exactly when no
// revision of the document has been accepted before.
//
// On acceptance it returns the routing and grant declarations to apply
// atomically with the revision. On rejection it returns an *Unauthorized,
// *ValidationError, or *Forbidden error and the write must not be applied;
// a rejected evaluation has no partial effects.
func (e *Engine) Evaluate(actor Principal, doc, oldDoc *Document) (*Result, error) {
	op, typ := Classify(doc, oldDoc)

	// A document keeps its type for life, whoever the actor is.
	if op == OpUpdate {
		if err := readOnly("type", doc.Type, oldDoc.Type); err != nil {
			return nil, err
		}
	}

	rules, ok := e.rules[typ]
	if !ok {
		e.log.Warn().
			Str("doc_id", doc.ID).
			Str("doc_type", typ).
			Str("actor", actor.Name()).
			Msg("rejecting write with invalid document type")
		return nil, &Forbidden{Reason: "Invalid document type: " + typ}
	}

	ev := &evaluation{doc: doc, oldDoc: oldDoc, op: op, actor: actor}

	if err := rules.authorize(ev); err != nil {
		return nil, err
	}

	// Tombstones are exempt from per-type validation: they need not carry
	// the type's fields, and authorization above already gated the delete.
	if op != OpDelete {
		if err := rules.validate(ev); err != nil {
			return nil, err
		}
	}

	res := &Result{}
	if op != OpDelete {
		rules.route(ev, res)
	}
	return res, nil
}
