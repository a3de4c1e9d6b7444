package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

func smells(m dsl.Matcher) {
	// Two consecutive guard clauses returning the same value are mergeable.
	m.Match(`if $c1 { return $ret }; if $c2 { return $ret }`).
		Report(`two consecutive guards return the same value; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { return $ret }`)

	m.Match(`if $c1 { continue }; if $c2 { continue }`).
		Report(`two consecutive continues; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { continue }`)

	// Nested for-loops are not always wrong but are worth a second look —
	// the cosine ranking path is the only place we accept O(n*m).
	m.Match(`for $*_ { for $*_ { $*_ } }`).
		Report(`nested for-loop; consider extracting inner loop logic or reducing algorithmic complexity`)
}

func errhandling(m dsl.Matcher) {
	m.Match(`errors.New(fmt.Sprintf($*args))`).
		Report(`errors.New(fmt.Sprintf(...)) can be fmt.Errorf(...)`).
		Suggest(`fmt.Errorf($args)`)

	m.Match(`time.Now().Sub($x)`).
		Report(`time.Now().Sub(x) can be time.Since(x)`).
		Suggest(`time.Since($x)`)
}
