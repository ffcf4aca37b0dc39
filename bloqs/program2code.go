package bloqs

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// OnStartBloqName is the block type getting its segment scheduled
// unconditionally at startup.
const OnStartBloqName = "OnStart"

// resolvedAction pairs a component action with the parameter values rendered
// from one block instance.
type resolvedAction struct {
	definition ComponentAction
	parameters map[string]string
	values     map[string]string
}

type compiler struct {
	components []*Component
	bloqTypes  []*BloqType
	hardware   *Hardware

	code              *ArduinoCode
	functionNameIndex int
}

// Program2Code compiles a block program against the given catalogs. The
// whole compile aborts on the first structural inconsistency; no partial
// output is returned.
func Program2Code(components []*Component, bloqTypes []*BloqType, hardware *Hardware, program Program) (*ArduinoCode, error) {
	c := &compiler{
		components: components,
		bloqTypes:  bloqTypes,
		hardware:   hardware,
		code:       &ArduinoCode{},
	}
	for timelineIndex, timeline := range program {
		if len(timeline) == 0 {
			continue
		}
		if err := c.compileTimeline(timelineIndex, timeline); err != nil {
			return nil, err
		}
	}
	log.Debugf("bloqs: compiled %d timelines into %d definitions", len(program), len(c.code.Definitions))
	return c.code, nil
}

// CompileBundle compiles a complete editor bundle.
func CompileBundle(b *Bundle) (*ArduinoCode, error) {
	if b.Hardware == nil {
		return nil, fmt.Errorf("bloqs: bundle has no hardware configuration")
	}
	return Program2Code(b.ComponentsDefinition, b.BloqTypes, b.Hardware, b.Program)
}

func (c *compiler) nextFunctionName() string {
	c.functionNameIndex++
	return fmt.Sprintf("func_%d", c.functionNameIndex)
}

// compileTimeline walks one timeline block by block. Wait and event blocks
// split the timeline into resumable segments, each a synthesized function
// pushed onto the runtime scheduler heap; consecutive action blocks coalesce
// into one segment body.
func (c *compiler) compileTimeline(timelineIndex int, timeline []*Bloq) error {
	flag := fmt.Sprintf("timeline%d", timelineIndex)

	for i := 0; i < len(timeline); i++ {
		bloq := timeline[i]
		definition, err := c.bloqDefinition(bloq)
		if err != nil {
			return err
		}

		switch definition.Category {
		case CategoryWait:
			if err := c.compileWait(bloq, definition); err != nil {
				return err
			}

		case CategoryEvent:
			if err := c.compileEvent(bloq, definition, flag); err != nil {
				return err
			}

		case CategoryAction:
			var body strings.Builder
			for {
				lines, err := c.bloqCode(bloq)
				if err != nil {
					return err
				}
				body.WriteString("\t" + strings.Join(lines, "\n\t") + "\n")
				i++
				if i >= len(timeline) {
					break
				}
				bloq = timeline[i]
				if definition, err = c.bloqDefinition(bloq); err != nil {
					return err
				}
				if definition.Category != CategoryAction {
					break
				}
			}
			c.code.Definitions = append(c.code.Definitions, body.String())
			i-- // the non-action block still needs processing

		default:
			return fmt.Errorf("bloqs: bloq type %q has unknown category %q", definition.Name, definition.Category)
		}
	}

	// Close the last open segment, rearming the timeline trigger.
	c.code.Definitions = append(c.code.Definitions, fmt.Sprintf("\t%s = false;\n}", flag))
	return nil
}

// compileWait ends the current segment by scheduling a continuation
// function and opens that function's body.
func (c *compiler) compileWait(bloq *Bloq, definition *BloqType) error {
	if len(definition.Actions) == 0 {
		return fmt.Errorf("bloqs: wait bloq %q has no actions", definition.Name)
	}
	action := definition.Actions[0]
	template, hasTemplate := action.Parameters["code"]
	if action.Name != "wait" || !hasTemplate {
		return fmt.Errorf("bloqs: wait bloq %q has no wait code template", definition.Name)
	}

	functionName := c.nextFunctionName()
	bindings := map[string]string{"functionName": functionName}
	for name, value := range bloq.Parameters {
		bindings[name] = value
	}
	scheduleCode, err := RenderTemplate(template, bindings)
	if err != nil {
		return err
	}

	c.code.Definitions = append(c.code.Definitions,
		fmt.Sprintf("\t%s\n}\nvoid %s() {\n", scheduleCode, functionName))
	c.code.Globals = append(c.code.Globals, fmt.Sprintf("void %s();\n", functionName))
	return nil
}

// compileEvent opens a new segment guarded by the timeline's fired flag.
func (c *compiler) compileEvent(bloq *Bloq, definition *BloqType, flag string) error {
	functionName := c.nextFunctionName()

	if definition.Name == OnStartBloqName {
		c.code.Setup = append(c.code.Setup,
			fmt.Sprintf("heap.insert(%s);\n%s = true;\n", functionName, flag))
		c.code.Globals = append(c.code.Globals,
			fmt.Sprintf("bool %s = false;\nvoid %s();\n", flag, functionName))
		c.code.Definitions = append(c.code.Definitions,
			fmt.Sprintf("void %s() {\n", functionName))
		return nil
	}

	component, err := c.componentForBloq(bloq)
	if err != nil {
		return err
	}
	lines, err := c.bloqCode(bloq)
	if err != nil {
		return err
	}
	if len(lines) != 1 {
		return fmt.Errorf("bloqs: event bloq %q produced %d code lines, expected exactly 1",
			definition.Name, len(lines))
	}

	triggerValue, known := component.Values[bloq.Parameters["action"]]
	if !known {
		return fmt.Errorf("bloqs: component %q has no value for action %q",
			component.Name, bloq.Parameters["action"])
	}

	c.code.Loop = append(c.code.Loop, fmt.Sprintf(
		"if (%s == %s) {\n\tif (!%s) {\n\t\theap.insert(%s);\n\t\t%s = true;\n\t}\n}\n",
		lines[0], triggerValue, flag, functionName, flag))
	c.code.Globals = append(c.code.Globals,
		fmt.Sprintf("bool %s = false;\nvoid %s();\n", flag, functionName))
	c.code.Definitions = append(c.code.Definitions,
		fmt.Sprintf("void %s() {\n", functionName))
	return nil
}

// bloqDefinition resolves a block instance against the block type catalog.
func (c *compiler) bloqDefinition(bloq *Bloq) (*BloqType, error) {
	for _, definition := range c.bloqTypes {
		if definition.Name == bloq.Type {
			return definition, nil
		}
	}
	return nil, fmt.Errorf("bloqs: bloq type %q not defined", bloq.Type)
}

// componentForBloq resolves the board component instance the block refers to
// and its full catalog definition.
func (c *compiler) componentForBloq(bloq *Bloq) (*Component, error) {
	instanceName := bloq.Parameters["component"]
	var instance *ComponentInstance
	for i := range c.hardware.Components {
		if c.hardware.Components[i].Name == instanceName {
			instance = &c.hardware.Components[i]
			break
		}
	}
	if instance == nil {
		return nil, fmt.Errorf("bloqs: component %q not found on board", instanceName)
	}
	return c.fullComponentDefinition(instance.Component)
}

// fullComponentDefinition resolves a catalog entry with its Extends chain
// flattened: child actions and values override the parent's.
func (c *compiler) fullComponentDefinition(name string) (*Component, error) {
	var definition *Component
	for _, candidate := range c.components {
		if candidate.Name == name {
			definition = candidate
			break
		}
	}
	if definition == nil {
		return nil, fmt.Errorf("bloqs: component %q not defined", name)
	}
	if definition.Extends == "" {
		return definition, nil
	}

	parent, err := c.fullComponentDefinition(definition.Extends)
	if err != nil {
		return nil, err
	}
	merged := &Component{Name: definition.Name, Values: map[string]string{}}
	merged.Actions = append(merged.Actions, parent.Actions...)
	merged.Actions = append(merged.Actions, definition.Actions...)
	for k, v := range parent.Values {
		merged.Values[k] = v
	}
	for k, v := range definition.Values {
		merged.Values[k] = v
	}
	return merged, nil
}

// actions resolves every action the block requests against the component's
// action catalog and renders the per-parameter templates.
func (c *compiler) actions(bloq *Bloq, definition *BloqType, component *Component) ([]resolvedAction, error) {
	if len(definition.Actions) == 0 {
		return nil, fmt.Errorf("bloqs: bloq type %q has no actions", definition.Name)
	}
	if len(component.Actions) == 0 {
		return nil, fmt.Errorf("bloqs: component %q has no actions", component.Name)
	}

	resolved := make([]resolvedAction, 0, len(definition.Actions))
	for _, bloqAction := range definition.Actions {
		var componentAction *ComponentAction
		for i := range component.Actions {
			if component.Actions[i].Name == bloqAction.Name {
				componentAction = &component.Actions[i]
				break
			}
		}
		if componentAction == nil {
			return nil, fmt.Errorf("bloqs: action %q not defined in component %q",
				bloqAction.Name, component.Name)
		}

		parameters := map[string]string{}
		for _, parameter := range componentAction.Parameters {
			template, bound := bloqAction.Parameters[parameter]
			if !bound {
				return nil, fmt.Errorf("bloqs: bloq type %q does not bind parameter %q of action %q",
					definition.Name, parameter, bloqAction.Name)
			}
			value, err := RenderTemplate(template, bloq.Parameters)
			if err != nil {
				return nil, err
			}
			parameters[parameter] = value
		}
		resolved = append(resolved, resolvedAction{
			definition: *componentAction,
			parameters: parameters,
			values:     component.Values,
		})
	}
	return resolved, nil
}

// bloqCode renders one block instance into code lines via its component's
// action templates.
func (c *compiler) bloqCode(bloq *Bloq) ([]string, error) {
	definition, err := c.bloqDefinition(bloq)
	if err != nil {
		return nil, err
	}
	component, err := c.componentForBloq(bloq)
	if err != nil {
		return nil, err
	}
	resolved, err := c.actions(bloq, definition, component)
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(resolved))
	for _, action := range resolved {
		bindings := action.parameters
		// A parameter naming a component value is an alias for the constant.
		if alias, isAlias := action.values[bindings["value"]]; isAlias {
			bindings["value"] = alias
		}
		line, err := RenderTemplate(action.definition.Code, bindings)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}
