package schemabuilder

import (
	"github.com/graphql-go/graphql"

	"go.causeway.dev/gqlv/jerrors"
)

const (
	ScenarioFieldName        = "Scenario"
	ScenarioTypeName         = "gqlv_Scenario"
	ScenarioStepTypeName     = "gqlv_ScenarioStep"
	scenarioStepsDescription = "Re-exposes the query surface within the scenario."
)

// scenarioSource is the source of the fields of a Scenario.
type scenarioSource struct {
	name string
}

// scenarioStepSource is the source of the fields of a ScenarioStep. Step
// fields do not depend on it.
type scenarioStepSource struct{}

// newScenarioStep creates the step node early so saveAs fields can refer to
// it. It is populated by buildScenarioStep once the query surface exists.
func (c *Context) newScenarioStep() error {
	c.scenarioStep = newElementCustom(c, ScenarioStepTypeName, scenarioStepsDescription)
	_, err := c.scenarioStep.Ref()
	return err
}

func (c *Context) buildScenarioStep() error {
	for _, el := range c.surface() {
		c.scenarioStep.AddChildField(el)
	}
	_, err := c.scenarioStep.BuildType()
	return err
}

// scenarioField is Scenario(name: String!) on the query root. It records
// the scenario name in the request context.
func (c *Context) scenarioField() (Element, error) {
	step, err := c.scenarioStep.Ref()
	if err != nil {
		return Element{}, err
	}

	n := newElementCustom(c, ScenarioTypeName, "A named Given/When/Then scenario.")
	n.AddChildField(Element{
		Name:  "Name",
		Field: &graphql.Field{Name: "Name", Type: graphql.String},
		Fetcher: func(p graphql.ResolveParams) (interface{}, error) {
			if src, ok := p.Source.(scenarioSource); ok {
				return src.name, nil
			}
			return nil, nil
		},
	})
	for _, name := range []string{"Given", "When", "Then"} {
		n.AddChildField(Element{
			Name:  name,
			Field: &graphql.Field{Name: name, Type: step},
			Fetcher: func(graphql.ResolveParams) (interface{}, error) {
				return scenarioStepSource{}, nil
			},
		})
	}

	el, err := n.FieldFor(ScenarioFieldName, "")
	if err != nil {
		n.Discard()
		return Element{}, err
	}
	el.Field.Args = graphql.FieldConfigArgument{
		"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
	}
	el.Fetcher = c.fetcher("scenario", func(p graphql.ResolveParams) (interface{}, error) {
		rc := RequestContextFrom(p.Context)
		if rc == nil {
			return nil, jerrors.ErrNoRequestContext
		}
		name := stringArg(p, "name")
		rc.SetScenario(name)
		return scenarioSource{name: name}, nil
	})
	return el, nil
}
