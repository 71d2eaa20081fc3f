/*
Package reaction provides the ENDF-6 reaction taxonomy: the bidirectional
mapping between MT integers and canonical reaction names, and the sum
rules used to synthesise an aggregate reaction (e.g. nonelastic,
absorption) from its children when the aggregate itself is not directly tabulated.

The taxonomy is a fixed, versioned table, not data loaded from a file,
the same way a codon or base-pair encoding table is a Go literal rather
than a parsed resource. Changing what an MT number means is a breaking
change to this package, not a data update.
*/
package reaction

import (
	"fmt"
	"sort"
	"strings"
)

// MT is an ENDF-6 reaction identifier.
type MT int

// String renders the MT's canonical name if known, otherwise "MT<n>".
func (mt MT) String() string {
	if name, ok := nameByMT[mt]; ok {
		return name
	}
	return fmt.Sprintf("MT%d", int(mt))
}

// Well-known MT numbers referenced throughout the package and by callers
// that want to avoid magic numbers.
const (
	Total              MT = 1
	Elastic            MT = 2
	Nonelastic         MT = 3
	InelasticSum       MT = 4
	N2N                MT = 16
	N3N                MT = 17
	Fission            MT = 18
	NNAlpha            MT = 22
	N2NAlpha           MT = 24
	Disappearance      MT = 101
	NGamma             MT = 102
	NProton            MT = 103
	NDeuteron          MT = 104
	NTriton            MT = 105
	NHe3               MT = 106
	NAlpha             MT = 107
	Absorption         MT = 27
	Heating            MT = 301
	Damage             MT = 444
	InelasticLevelLow  MT = 51
	InelasticLevelHigh MT = 90
	InelasticContinuum MT = 91
)

// FissionLike are the MTs whose non-zero presence at any loaded
// temperature marks a nuclide as fissionable.
var FissionLike = []MT{18, 19, 20, 21, 38}

// nameByMT and mtByName are built from the same table literal so the two
// directions can never drift out of sync.
var canonicalTable = []struct {
	mt      MT
	name    string
	aliases []string
}{
	{1, "total", nil},
	{2, "elastic", nil},
	{3, "nonelastic", nil},
	{4, "inelastic", []string{"inelastic-sum"}},
	{16, "(n,2n)", []string{"n2n"}},
	{17, "(n,3n)", []string{"n3n"}},
	{18, "fission", nil},
	{19, "(n,f)", nil},
	{20, "(n,nf)", nil},
	{21, "(n,2nf)", nil},
	{22, "(n,na)", nil},
	{23, "(n,n3a)", nil},
	{24, "(n,2na)", nil},
	{25, "(n,3na)", nil},
	{27, "absorption", nil},
	{28, "(n,np)", nil},
	{29, "(n,n2a)", nil},
	{30, "(n,2n2a)", nil},
	{32, "(n,nd)", nil},
	{33, "(n,nt)", nil},
	{34, "(n,nHe3)", nil},
	{35, "(n,nd2a)", nil},
	{36, "(n,nt2a)", nil},
	{37, "(n,4n)", nil},
	{38, "(n,3nf)", nil},
	{41, "(n,2np)", nil},
	{42, "(n,3np)", nil},
	{44, "(n,n2p)", nil},
	{45, "(n,npa)", nil},
	{51, "inelastic-level-1", nil},
	{91, "inelastic-continuum", nil},
	{101, "disappearance", nil},
	{102, "(n,gamma)", []string{"ngamma", "capture"}},
	{103, "(n,p)", nil},
	{104, "(n,d)", nil},
	{105, "(n,t)", nil},
	{106, "(n,3He)", []string{"(n,he3)"}},
	{107, "(n,a)", []string{"(n,alpha)"}},
	{108, "(n,2a)", nil},
	{109, "(n,3a)", nil},
	{111, "(n,2p)", nil},
	{112, "(n,pa)", nil},
	{113, "(n,t2a)", nil},
	{114, "(n,d2a)", nil},
	{115, "(n,pd)", nil},
	{116, "(n,pt)", nil},
	{117, "(n,da)", nil},
	{203, "(n,Xp)", nil},
	{204, "(n,Xd)", nil},
	{205, "(n,Xt)", nil},
	{206, "(n,3He)-charged-sum", nil},
	{207, "(n,Xa)", nil},
	{301, "heating", nil},
	{444, "damage-energy", nil},
}

var (
	nameByMT = map[MT]string{}
	mtByName = map[string]MT{}
)

func init() {
	for _, entry := range canonicalTable {
		nameByMT[entry.mt] = entry.name
		mtByName[normalize(entry.name)] = entry.mt
		for _, alias := range entry.aliases {
			mtByName[normalize(alias)] = entry.mt
		}
	}
	// Discrete-level inelastic, MT 51-90, gets generated names so
	// MTOf/NameOf work over the whole range without a 40-entry table
	// literal. The continuum band, MT 91, is named in the table literal.
	for mt := InelasticLevelLow; mt <= InelasticLevelHigh; mt++ {
		if _, ok := nameByMT[mt]; !ok {
			level := int(mt) - int(InelasticLevelLow) + 1
			name := fmt.Sprintf("inelastic-level-%d", level)
			nameByMT[mt] = name
			mtByName[normalize(name)] = mt
		}
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// MTOf resolves a canonical reaction name (case-insensitive) to its MT
// number.
func MTOf(name string) (MT, error) {
	if mt, ok := mtByName[normalize(name)]; ok {
		return mt, nil
	}
	return 0, fmt.Errorf("reaction: %q is not a recognised reaction name", name)
}

// NameOf returns the canonical name for an MT number, or its numeric
// rendering if the MT is not in the fixed table (evaluated files
// occasionally carry vendor-specific MTs outside the common set).
func NameOf(mt MT) string {
	return mt.String()
}

// nonelasticChildren is the fixed MT set that MT 3 (nonelastic) sums over
// when it is absent and must be synthesised. Includes MT 24 ((n,2na)) as
// a direct child of nonelastic, in the 22-26 range; it is not part of the
// inelastic band (see inelasticChildren below). nonelasticChildren lists only what sums
// directly into nonelastic (i.e. everything except what MT 4 already
// covers, plus MT 4 itself).
var nonelasticChildren = buildNonelasticChildren()

func buildNonelasticChildren() []MT {
	children := []MT{4, 16, 17, 22, 23, 24, 25, 26, 28, 29, 30, 32, 33, 34, 35, 36, 37, 41, 42, 44, 45}
	for mt := 102; mt <= 117; mt++ {
		children = append(children, MT(mt))
	}
	sort.Slice(children, func(i, j int) bool { return children[i] < children[j] })
	return children
}

// inelasticChildren is the discrete-level + continuum band that MT 4 sums
// over. MT 24 ((n,2na)) is deliberately not repeated here: it is already
// folded into nonelasticChildren's direct 22-26 range per the corpus's
// Li6 aggregation (see DESIGN.md), and double-counting it under both MT 3
// and MT 4 would double its contribution whenever both are synthesised.
var inelasticChildren = buildInelasticChildren()

func buildInelasticChildren() []MT {
	var children []MT
	for mt := InelasticLevelLow; mt <= InelasticLevelHigh; mt++ {
		children = append(children, mt)
	}
	children = append(children, InelasticContinuum)
	sort.Slice(children, func(i, j int) bool { return children[i] < children[j] })
	return children
}

// disappearanceChildren is the MT-101 sum rule: capture and every
// (n,charged-particle) absorption-like reaction, MT 102-117, never
// fission.
var disappearanceChildren = buildDisappearanceChildren()

func buildDisappearanceChildren() []MT {
	var children []MT
	for mt := 102; mt <= 117; mt++ {
		children = append(children, MT(mt))
	}
	return children
}

// Children returns the fixed list of MTs that mt sums over when mt itself
// is absent from a dataset and must be synthesised. fissionable controls
// whether Fission (18) is folded into MT 27's (absorption) children. The
// second return value is false when mt has no sum rule (it is a primary
// datum, like Total) or is not one of the aggregates this package knows
// how to synthesise.
func Children(mt MT, fissionable bool) ([]MT, bool) {
	switch mt {
	case Nonelastic:
		return nonelasticChildren, true
	case InelasticSum:
		return inelasticChildren, true
	case Absorption:
		children := append([]MT(nil), disappearanceChildren...)
		if fissionable {
			children = append(children, Fission)
			sort.Slice(children, func(i, j int) bool { return children[i] < children[j] })
		}
		return children, true
	case Disappearance:
		return disappearanceChildren, true
	default:
		return nil, false
	}
}

// IsFissionLike reports whether mt is one of the MTs whose non-zero
// presence marks a nuclide fissionable.
func IsFissionLike(mt MT) bool {
	for _, f := range FissionLike {
		if f == mt {
			return true
		}
	}
	return false
}
