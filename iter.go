package unformat

import "iter"

// An Iterator steps through the non-overlapping matches of a template,
// left to right. It is not safe for concurrent use.
//
//	it := p.FindAll(text)
//	for it.Next() {
//		r := it.Result()
//		...
//	}
//	if err := it.Err(); err != nil {
//		...
//	}
type Iterator struct {
	parser   *Parser
	runes    []rune
	pos, end int
	evaluate bool

	match  *Match
	result *Result
	err    error
	done   bool
}

func newIterator(p *Parser, text string, pos, endPos int) *Iterator {
	it := &Iterator{parser: p, evaluate: p.evaluate}
	if !p.prefilter.mayMatch(text) {
		// Still surface engine errors such as ErrTooManyFields.
		_, it.err = p.engine(false)
		it.done = true
		return it
	}
	it.runes = []rune(text)
	var ok bool
	it.pos, it.end, ok = clampRange(len(it.runes), pos, endPos)
	it.done = !ok
	return it
}

// Next advances to the next match and reports whether there is one.
// Once Next returns false it keeps returning false.
func (it *Iterator) Next() bool {
	it.match, it.result = nil, nil
	if it.done {
		return false
	}
	re, err := it.parser.engine(false)
	if err != nil {
		return it.stop(err)
	}
	m, err := re.FindRunesMatchStartingAt(it.runes[:it.end], it.pos)
	if err != nil {
		return it.stop(err)
	}
	if m == nil {
		return it.stop(nil)
	}
	next := m.Index + m.Length
	if m.Length == 0 {
		// An empty match would be found again at the same place.
		next++
	}
	it.pos = next
	if it.pos > it.end {
		it.done = true
	}
	it.match = &Match{parser: it.parser, m: m}
	if it.evaluate {
		if it.result, err = it.match.Evaluate(); err != nil {
			it.match = nil
			return it.stop(err)
		}
	}
	return true
}

func (it *Iterator) stop(err error) bool {
	it.err = err
	it.done = true
	return false
}

// Match returns the current match.
func (it *Iterator) Match() *Match { return it.match }

// Result returns the current match's values. It is nil when the iterator
// was created with EvaluateResult(false); use Match().Evaluate instead.
func (it *Iterator) Result() *Result { return it.result }

// Err returns the error, if any, that stopped the iteration.
func (it *Iterator) Err() error { return it.err }

// Collect evaluates every remaining match.
func (it *Iterator) Collect() ([]*Result, error) {
	var results []*Result
	for it.Next() {
		r := it.result
		if r == nil {
			var err error
			if r, err = it.match.Evaluate(); err != nil {
				return results, err
			}
		}
		results = append(results, r)
	}
	return results, it.Err()
}

// All returns the remaining results as a sequence for range loops. An
// error ends the sequence and is yielded with a nil Result.
func (it *Iterator) All() iter.Seq2[*Result, error] {
	return func(yield func(*Result, error) bool) {
		for it.Next() {
			r := it.result
			if r == nil {
				var err error
				if r, err = it.match.Evaluate(); err != nil {
					yield(nil, err)
					return
				}
			}
			if !yield(r, nil) {
				return
			}
		}
		if err := it.Err(); err != nil {
			yield(nil, err)
		}
	}
}
