// Package letters turns job postings into cover letters and structured
// job analyses through an LLM provider. Generated letters are persisted
// to the object store when the caller is authenticated; anonymous calls
// return content only.
package letters
