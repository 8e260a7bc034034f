// Package userdata persists the single user profile as a JSON document.
//
// The file on disk is the source of truth. Reads validate it strictly against
// the profile schema (name and age, both optional strings; nothing else).
// Updates follow a read, merge, validate, write cycle and replace the file by
// renaming a fully written temp file over it, so the data path never holds a
// partial document.
//
// Errors are typed:
//   - *ReadError: the file is missing, not JSON, or does not match the schema
//   - *WriteError: serialization or atomic replacement failed
//   - *ValidationError: a merged update was rejected by the schema
package userdata
