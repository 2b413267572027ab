package common

import "errors"

var (
	ErrNodeExists   = errors.New("node already exists")
	ErrNodeNotFound = errors.New("node not found")
)

// NodeKind tags the variant of a Node.
type NodeKind string

const (
	KindIdentity  NodeKind = "Identity"
	KindReference NodeKind = "Reference"
	KindEvent     NodeKind = "Event"
)

// DocType is the document class of a Reference node.
type DocType string

const (
	DocPassport             DocType = "PASSPORT"
	DocNaturalisation       DocType = "NATURALISATION"
	DocVisa1                DocType = "VISA_1"
	DocVisa2                DocType = "VISA_2"
	DocNationalIdentityCard DocType = "NATIONAL_IDENTITY_CARD"
)

// DocTypes lists every DocType in the order used for uniform sampling.
var DocTypes = []DocType{
	DocPassport,
	DocNaturalisation,
	DocVisa1,
	DocVisa2,
	DocNationalIdentityCard,
}

// EventType is the occurrence class of an Event node.
type EventType string

const EventBiometricVerification EventType = "BIOMETRIC_VERIFICATION"

// EdgeType is the relationship carried by a directed edge.
type EdgeType string

const (
	EdgeIdentityEquivalence         EdgeType = "IDENTITY_EQUIVALENCE"
	EdgeIncludedIn                  EdgeType = "INCLUDED_IN"
	EdgeCitedBy                     EdgeType = "CITED_BY"
	EdgeIdentifiedThroughBiometrics EdgeType = "IDENTIFIED_THROUGH_BIOMETRICS"
	EdgeManualIdentityOverride      EdgeType = "MANUAL_IDENTITY_OVERRIDE"
	EdgeImmigrationStatusLinked     EdgeType = "IMMIGRATION_STATUS_LINKED"
	EdgeSameApplication             EdgeType = "SAME_APPLICATION"
)

// EdgeTypes lists every known EdgeType.
var EdgeTypes = []EdgeType{
	EdgeIdentityEquivalence,
	EdgeIncludedIn,
	EdgeCitedBy,
	EdgeIdentifiedThroughBiometrics,
	EdgeManualIdentityOverride,
	EdgeImmigrationStatusLinked,
	EdgeSameApplication,
}

// Valid reports whether t is one of the known edge types.
func (t EdgeType) Valid() bool {
	for _, known := range EdgeTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Node is a closed tagged union over Identity, Reference and Event.
// Nodes are values: once added to a Graph they are never modified.
type Node interface {
	NodeID() string
	Kind() NodeKind
	isNode()
}

// Identity is one identity record of a synthetic person.
//
// Age is derived from DateOfBirth at generation time. DateOfBirth uses the
// day-first format dd/mm/yyyy and Nationality is an ISO 3166 alpha-3 code.
type Identity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Age         int    `json:"age"`
	DateOfBirth string `json:"date_of_birth"`
	Nationality string `json:"nationality"`
}

// Reference is a supporting document cited by identity records.
type Reference struct {
	ID        string  `json:"id"`
	DocType   DocType `json:"doc_type"`
	DocNumber string  `json:"doc_number"`
}

// Event is a biometric verification occurrence.
type Event struct {
	ID        string    `json:"id"`
	EventType EventType `json:"event_type"`
	EventDate string    `json:"event_date"`
}

func (i Identity) NodeID() string  { return i.ID }
func (i Identity) Kind() NodeKind  { return KindIdentity }
func (Identity) isNode()           {}
func (r Reference) NodeID() string { return r.ID }
func (r Reference) Kind() NodeKind { return KindReference }
func (Reference) isNode()          {}
func (e Event) NodeID() string     { return e.ID }
func (e Event) Kind() NodeKind     { return KindEvent }
func (Event) isNode()              {}

// Edge is one directed, typed edge of the multigraph. Seq is the insertion
// position of the edge and distinguishes parallel edges of the same type
// between the same ordered pair of nodes.
type Edge struct {
	Seq  int      `json:"seq"`
	From string   `json:"from"`
	To   string   `json:"to"`
	Type EdgeType `json:"type"`
}

// Island is an ordered list of identity ids. The first element is the base
// identity, the remaining elements are its variants.
type Island []string

// Base returns the base identity id of the island.
func (i Island) Base() string {
	if len(i) == 0 {
		return ""
	}
	return i[0]
}

// Contains reports whether id is a member of the island.
func (i Island) Contains(id string) bool {
	for _, member := range i {
		if member == id {
			return true
		}
	}
	return false
}

// AnomalyKind names one of the controlled corruptions.
type AnomalyKind string

const (
	AnomalyDuplicateIdentity     AnomalyKind = "duplicate_identity"
	AnomalyInconsistentReference AnomalyKind = "inconsistent_reference"
	AnomalyMislinkedIdentity     AnomalyKind = "mislinked_identity"
	AnomalyIncorrectEvent        AnomalyKind = "incorrect_event"
)

// AnomalyKinds lists the anomaly kinds in the order used for uniform sampling.
var AnomalyKinds = []AnomalyKind{
	AnomalyDuplicateIdentity,
	AnomalyInconsistentReference,
	AnomalyMislinkedIdentity,
	AnomalyIncorrectEvent,
}

// AnomalyLabel records a single injected anomaly so that the generated data
// can be used as labeled ground truth.
//
// Source is the identity drawn for the anomaly. Node is the id of the node
// created by the anomaly (empty for mislinks). Target is the endpoint of the
// corrupting edge. Fallback is set when a mislink could not find a similar
// identity and linked a random foreign identity instead.
type AnomalyLabel struct {
	Kind     AnomalyKind `json:"kind"`
	Island   int         `json:"island"`
	Source   string      `json:"source"`
	Node     string      `json:"node,omitempty"`
	Target   string      `json:"target"`
	Fallback bool        `json:"fallback,omitempty"`
}
