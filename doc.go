// Package xmlship exports the rows of a relational table as an XML document
// and delivers it to an HTTP endpoint.
//
// Typical flow:
//  1. Construct a Source for the backing database (see the mysql and sqlite packages).
//  2. Construct a Client for the receiving endpoint.
//  3. Run a Workflow to fetch, encode, optionally persist, and deliver one collection.
//
// Delivery retries transient failures (5xx responses and transport errors)
// with exponential backoff; client errors stop immediately. The workflow
// entry points never return an error: every failure is folded into the
// returned WorkflowResult.
package xmlship
