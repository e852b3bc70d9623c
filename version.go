// Package lambdadoctor diagnoses cold-start problems in packaged
// Node.js serverless functions.
package lambdadoctor

// Version is the current lambda-doctor release.
const Version = "0.1.0"
