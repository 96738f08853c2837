package app

// Relevant exposes relevant for testing.
var Relevant = relevant
