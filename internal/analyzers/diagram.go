package analyzers

import (
	"sort"

	"github.com/strata-dev/strata/internal/types"
)

// Node is one box in a synthesized diagram.
type Node struct {
	ID         string `yaml:"id"`
	Label      string `yaml:"label"`
	Kind       string `yaml:"kind"` // system | actor | container | datastore | broker
	Technology string `yaml:"technology,omitempty"`
}

// Edge is a directed relation between two nodes.
type Edge struct {
	From  string `yaml:"from"`
	To    string `yaml:"to"`
	Label string `yaml:"label,omitempty"`
}

// Diagram is a C4-style diagram expressed as data; rendering to any drawing
// syntax happens strictly downstream of serialization.
type Diagram struct {
	Name  string `yaml:"name"`
	Level string `yaml:"level"` // context | container
	Nodes []Node `yaml:"nodes"`
	Edges []Edge `yaml:"edges"`
}

// DiagramSet is the diagram synthesizer's artifact.
type DiagramSet struct {
	Failed        bool      `yaml:"failed,omitempty"`
	FailureReason string    `yaml:"failure_reason,omitempty"`
	Diagrams      []Diagram `yaml:"diagrams"`
}

// FailedDiagramSet is the minimal, structurally valid artifact emitted when
// diagram synthesis fails.
func FailedDiagramSet(err error) DiagramSet {
	return DiagramSet{Failed: true, FailureReason: err.Error(), Diagrams: []Diagram{}}
}

// SynthesizeDiagrams derives a context and a container diagram from the
// decision set. Node inventory is driven by decision categories, so every
// diagram references at least one detected technology whenever decisions
// exist at all.
func SynthesizeDiagrams(in Input) (DiagramSet, error) {
	byCat := map[types.Category][]types.DecisionRecord{}
	for _, d := range in.Decisions {
		byCat[d.Category] = append(byCat[d.Category], d)
	}
	for _, ds := range byCat {
		sort.Slice(ds, func(i, j int) bool { return ds[i].TechnologyID < ds[j].TechnologyID })
	}

	return DiagramSet{
		Diagrams: []Diagram{
			contextDiagram(byCat),
			containerDiagram(byCat),
		},
	}, nil
}

func contextDiagram(byCat map[types.Category][]types.DecisionRecord) Diagram {
	d := Diagram{Name: "System Context", Level: "context"}
	d.Nodes = append(d.Nodes, Node{ID: "system", Label: "Analyzed System", Kind: "system"})

	addActor := func(id, label, rel string, decisions []types.DecisionRecord) {
		if len(decisions) == 0 {
			return
		}
		tech := decisions[0].TechnologyID
		d.Nodes = append(d.Nodes, Node{ID: id, Label: label, Kind: "actor", Technology: tech})
		d.Edges = append(d.Edges, Edge{From: "system", To: id, Label: rel})
	}

	addActor("datastore", "Primary Datastore", "reads and writes", byCat[types.CatDatabase])
	addActor("cache", "Cache", "caches via", byCat[types.CatCaching])
	addActor("broker", "Message Broker", "publishes and consumes", byCat[types.CatMessaging])
	addActor("idp", "Identity Provider", "authenticates via", byCat[types.CatAuth])
	addActor("clients", "API Clients", "serves", byCat[types.CatAPIStyle])
	addActor("ci", "CI Pipeline", "built and tested by", byCat[types.CatCI])
	return d
}

func containerDiagram(byCat map[types.Category][]types.DecisionRecord) Diagram {
	d := Diagram{Name: "Containers", Level: "container"}

	// One application container per detected framework; fall back to one
	// per language when no framework was inferred.
	apps := byCat[types.CatFramework]
	if len(apps) == 0 {
		apps = byCat[types.CatLanguage]
	}
	for _, a := range apps {
		d.Nodes = append(d.Nodes, Node{
			ID:         "app-" + a.TechnologyID,
			Label:      a.TechnologyID + " application",
			Kind:       "container",
			Technology: a.TechnologyID,
		})
	}

	addStore := func(kind string, rel string, decisions []types.DecisionRecord) {
		for _, s := range decisions {
			id := kind + "-" + s.TechnologyID
			d.Nodes = append(d.Nodes, Node{ID: id, Label: s.TechnologyID, Kind: kind, Technology: s.TechnologyID})
			for _, a := range apps {
				d.Edges = append(d.Edges, Edge{From: "app-" + a.TechnologyID, To: id, Label: rel})
			}
		}
	}
	addStore("datastore", "persists to", byCat[types.CatDatabase])
	addStore("datastore", "caches in", byCat[types.CatCaching])
	addStore("broker", "messages via", byCat[types.CatMessaging])
	return d
}

// Technologies returns every technology referenced by the set, used by the
// diagram-specificity checker.
func (s DiagramSet) Technologies() []string {
	seen := map[string]bool{}
	var out []string
	for _, d := range s.Diagrams {
		for _, n := range d.Nodes {
			if n.Technology != "" && !seen[n.Technology] {
				seen[n.Technology] = true
				out = append(out, n.Technology)
			}
		}
	}
	sort.Strings(out)
	return out
}
