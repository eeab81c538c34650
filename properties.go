// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package puffin

// orderedProps is a string->string map that remembers insertion
// order, so that the footer JSON codec can emit properties objects
// with keys in the order the writer accumulated them (spec requires
// this for byte-exact footers).
type orderedProps struct {
	keys   []string
	values map[string]string
}

func (p *orderedProps) set(key, value string) {
	if p.values == nil {
		p.values = make(map[string]string)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

func (p *orderedProps) get(key string) (string, bool) {
	if p.values == nil {
		return "", false
	}
	v, ok := p.values[key]
	return v, ok
}

func (p *orderedProps) len() int { return len(p.keys) }

// each calls fn for every key in insertion order.
func (p *orderedProps) each(fn func(key, value string)) {
	for _, k := range p.keys {
		fn(k, p.values[k])
	}
}

func newOrderedProps(m map[string]string) orderedProps {
	var p orderedProps
	for k, v := range m {
		p.set(k, v)
	}
	return p
}

// Map returns a plain map copy of the properties.
func (p *orderedProps) Map() map[string]string {
	out := make(map[string]string, len(p.keys))
	p.each(func(k, v string) { out[k] = v })
	return out
}

// Equal reports whether p and other hold the same key/value pairs,
// ignoring insertion order. Lets go-cmp compare orderedProps (and
// structs embedding it) without tripping over its unexported fields.
func (p orderedProps) Equal(other orderedProps) bool {
	if p.len() != other.len() {
		return false
	}
	for _, k := range p.keys {
		v, ok := other.get(k)
		if !ok || v != p.values[k] {
			return false
		}
	}
	return true
}
