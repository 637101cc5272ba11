// Package seed loads claim and variation records into a claimdesk store.
//
// Records come either from the built-in sample set used by the dashboards
// or from a YAML file:
//
//	claims:
//	  - title: Steel Price Variation Claim
//	    description: Escalation of reinforcing steel prices since award
//	    status: submitted
//	    created_at: 2025-03-14T09:00:00Z
//	variations:
//	  - title: Additional drainage works
//	    status: under_review
//
// Every record is validated before anything is written. Records are then
// written in batches, both collections concurrently, retrying failed batches
// with exponential backoff and reporting progress as they go.
package seed
