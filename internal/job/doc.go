// Package job defines the data model of a single tutoring job: the
// request as it arrives on the wire, the resolved input modality, the
// intermediate stage results, the response envelope and the error
// taxonomy shared by every pipeline stage.
package job
