// Package executor runs parsed GraphQL query documents against an executable
// schema whose fields carry in-process resolver functions.
//
// Execution is a synchronous, depth-first walk of the selection set:
//
//  1. The operation is chosen by name (or by uniqueness when unnamed) and
//     variables are coerced against its variable definitions; coercion errors
//     stop execution before any resolver runs.
//  2. For each collected field (after fragment expansion and @skip/@include
//     filtering), argument values are coerced, the field's resolver is
//     invoked (schema.DefaultResolver when the field has none), and the raw
//     value is completed per the GraphQL specification: Non-Null unwrapping
//     with null-propagation to the nearest nullable ancestor, index-aware
//     list completion, leaf serialization for scalars and enums, and
//     concrete-type resolution for interface and union values via
//     Type.ResolveType.
//  3. Resolver errors become located errors (message + response path) and
//     null field values; execution continues elsewhere, so partial success
//     is supported.
//
// Resolvers receive the request context; cancellation is their own
// responsibility. The executor itself holds no state across requests and may
// be shared.
package executor
