package pipeline

// bestGroup buffers scored candidates that share a content-item id and, when
// the group closes, emits only the one with the lowest primary score.
// Ties keep the first-seen candidate. Candidates are assumed contiguous in
// the input; a record with another id closes the open group.
type bestGroup struct {
	stats *Stats
	emit  func([]byte) error

	open      bool
	id        string
	bestLine  []byte
	bestScore float64
	members   int
}

func newBestGroup(stats *Stats, emit func([]byte) error) *bestGroup {
	return &bestGroup{stats: stats, emit: emit}
}

// add offers a scored candidate. A different id first flushes the open group.
func (g *bestGroup) add(id string, line []byte, score float64) error {
	if g.open && g.id != id {
		if err := g.flush(); err != nil {
			return err
		}
	}
	if !g.open {
		g.open = true
		g.id = id
		g.bestLine = append([]byte(nil), line...)
		g.bestScore = score
		g.members = 1
		return nil
	}
	g.members++
	// Lower is better; strict inequality keeps the first-seen on ties.
	if score < g.bestScore {
		g.bestLine = append(g.bestLine[:0], line...)
		g.bestScore = score
	}
	return nil
}

// flushIfOther closes the open group when a non-candidate record for a
// different content item arrives, preserving output order.
func (g *bestGroup) flushIfOther(id string) error {
	if g.open && g.id != id {
		return g.flush()
	}
	return nil
}

// flush emits the best candidate of the open group, if any.
func (g *bestGroup) flush() error {
	if !g.open {
		return nil
	}
	g.stats.BestDropped += g.members - 1
	g.open = false
	line := g.bestLine
	g.bestLine = nil
	g.members = 0
	return g.emit(line)
}
