// Package bbtools builds the tools a financial-research agent can call, from a list of
// declarative tool definitions.
//
// # Overview
//
// Each Definition names a data-provider operation by path (e.g. "/api/v1/equity/price/quote"),
// an argument schema, default and override parameters, example parameter sets and a
// singular mode. Build turns the list into a Catalog:
//
// Definition → Resolver.Resolve (Operation) → NewOperationFunc (Func) → RenderExample
// (live usage line appended to the description) → NewFuncTool (Tool) → Registry.
//
// # Key concepts
//
//   - Parameter layers: override parameters always win over caller arguments; default
//     parameters only fill in names nobody supplied.
//   - Output shapes: a Func returns a list of records, one record (singular mode) or,
//     for hand-written tools, nothing. Callers distinguish on the shape.
//   - Self-documenting descriptions: every description carries one real call and its
//     (truncated) result, bounded to MaxDescriptionLen characters.
//   - Errors: ClientError carries validation messages back to the LLM; SystemError hides
//     provider failures.
//
// # Example
//
//	defs, err := config.Load("obbtools.yaml")
//	if err != nil { ... }
//	cat, err := bbtools.Build(ctx, defs, openbb.NewClient(baseURL))
//	if err != nil { ... }
//	err = cat.Execute(ctx, bbtools.ToolCall{ID: "1", ToolName: "get_quote", Args: []byte(`{"symbol":"AAPL"}`)},
//	    func(out []byte) error { fmt.Println(string(out)); return nil })
package bbtools
