// Package bloqs compiles block programs into microcontroller source code.
// Catalogs describe the available block types and hardware components; a
// program is a set of timelines, each an ordered list of block instances.
package bloqs

// BloqCategory classifies a block type.
type BloqCategory string

// Block categories handled by the compiler.
const (
	CategoryAction BloqCategory = "action"
	CategoryEvent  BloqCategory = "event"
	CategoryWait   BloqCategory = "wait"
)

// Bloq is one block instance in a timeline. Type names a BloqType catalog
// entry; Parameters bind the block's editable fields.
type Bloq struct {
	Type       string            `json:"type"`
	Parameters map[string]string `json:"parameters"`
}

// BloqAction names a component action and maps each of its parameters to a
// code template expanded against the block instance parameters.
type BloqAction struct {
	Name       string            `json:"name"`
	Parameters map[string]string `json:"parameters"`
}

// BloqType is a block catalog entry.
type BloqType struct {
	Name     string       `json:"name"`
	Category BloqCategory `json:"category"`
	Actions  []BloqAction `json:"actions"`
}

// ComponentAction is a concrete action a hardware component can perform.
// Code is a named-substitution template over the listed parameters.
type ComponentAction struct {
	Name       string   `json:"name"`
	Parameters []string `json:"parameters"`
	Code       string   `json:"code"`
}

// Component is a hardware component catalog entry. Values are enum-like
// constant lookups (e.g. pin states); Extends names a parent entry whose
// actions and values are inherited.
type Component struct {
	Name    string            `json:"name"`
	Extends string            `json:"extends,omitempty"`
	Actions []ComponentAction `json:"actions"`
	Values  map[string]string `json:"values"`
}

// ComponentInstance is one concrete component placed on the board.
type ComponentInstance struct {
	Name      string `json:"name"`
	Component string `json:"component"`
}

// Hardware describes the board configuration of a program.
type Hardware struct {
	Board      string              `json:"board"`
	Components []ComponentInstance `json:"components"`
}

// Program is an array of independent timelines.
type Program [][]*Bloq

// ArduinoCode is the compiler output: four ordered source sections meant to
// be concatenated into one file by downstream tooling.
type ArduinoCode struct {
	Globals     []string `json:"globals"`
	Definitions []string `json:"definitions"`
	Setup       []string `json:"setup"`
	Loop        []string `json:"loop"`
}

// Bundle is the complete compiler input as transported by the editor.
type Bundle struct {
	ComponentsDefinition []*Component `json:"componentsDefinition"`
	BloqTypes            []*BloqType  `json:"bloqTypes"`
	Hardware             *Hardware    `json:"hardware"`
	Program              Program      `json:"program"`
}
