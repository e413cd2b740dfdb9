/*
Package markov builds n-gram Markov chains from dictionary definitions and
generates pseudo-random text by sampling them.

Text is cleaned into word tokens by a Cleaner, BuildModel turns the tokens
into a Model that maps every n-gram State to a probability distribution over
the n-gram that follows it, and a Chain owns one Model together with its own
random number generator. Generate drives the chain for a fixed number of
iterations, re-seeding from a random state whenever it reaches a dead end.

Models live only in memory and are rebuilt from scratch, never updated in
place.
*/
package markov
