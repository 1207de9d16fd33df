// Package metadata reads the export dump that accompanies an archived
// collection: the list of pieces with their titles, collaborators, and
// attachment names, plus the owning user. Pieces are read-only views; the
// rename engine never mutates them.
package metadata
