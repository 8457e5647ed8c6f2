package schemabuilder

import (
	"fmt"
	"time"

	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"go.causeway.dev/gqlv/metamodel"
)

// Build generates the schema of c's metamodel.
//
// The first pass creates every node and object type. The second registers
// the data fetchers of every built node, then the schema is created and the
// fetchers are installed on its field definitions.
func Build(c *Context) (graphql.Schema, error) {
	start := time.Now()

	if c.Config.Scenario.Enabled {
		if err := c.newScenarioStep(); err != nil {
			return graphql.Schema{}, fmt.Errorf("scenario step: %w", err)
		}
	}
	for _, pojo := range c.Specs.Services() {
		spec, ok := c.Specs.SpecificationFor(pojo)
		if !ok || !spec.BeanSort().IsService() {
			c.skip(metamodel.TypeIdentifier(fmt.Sprintf("%T", pojo)), "not a service")
			continue
		}
		c.domainService(spec, pojo)
	}

	query, err := c.queryRoot()
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("query root: %w", err)
	}
	if c.scenarioStep != nil {
		if err := c.buildScenarioStep(); err != nil {
			return graphql.Schema{}, fmt.Errorf("scenario step: %w", err)
		}
	}
	var mutation *graphql.Object
	if c.Config.MutationRoot() {
		if mutation, err = c.mutationRoot(); err != nil {
			return graphql.Schema{}, fmt.Errorf("mutation root: %w", err)
		}
	}

	var types []graphql.Type
	for _, n := range c.nodes {
		if err := n.AddDataFetchers(c.Code); err != nil {
			return graphql.Schema{}, err
		}
		if n.IsBuilt() && !n.alias && !n.discarded {
			types = append(types, n.object)
		}
	}

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
		Types:    types,
	})
	if err != nil {
		return graphql.Schema{}, err
	}
	if err := c.Code.ApplyTo(&schema); err != nil {
		return graphql.Schema{}, err
	}

	elapsed := time.Since(start)
	c.Metrics.RecordSchemaBuild(elapsed, len(schema.TypeMap()))
	c.Logger.Info("schema built",
		zap.Int("types", len(schema.TypeMap())),
		zap.Int("fetchers", c.Code.Len()),
		zap.Duration("duration", elapsed))
	return schema, nil
}
