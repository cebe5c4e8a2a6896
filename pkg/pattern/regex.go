// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pattern

import (
	"regexp"
	"strings"
	"sync"
)

// compiled is a cache entry; err is kept so a bad pattern is compiled once
type compiled struct {
	re  *regexp.Regexp
	err error
}

// 🗄️ cache holds compiled patterns keyed by their source text
var cache sync.Map

func compile(pattern string) (*regexp.Regexp, error) {
	if c, ok := cache.Load(pattern); ok {
		entry := c.(*compiled)
		return entry.re, entry.err
	}

	re, err := regexp.Compile(pattern)
	c, _ := cache.LoadOrStore(pattern, &compiled{re: re, err: err})
	entry := c.(*compiled)
	return entry.re, entry.err
}

// search reports whether pattern matches anywhere in value. Invalid
// patterns never match.
func search(pattern, value string) bool {
	re, err := compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(value)
}

func substitute(s Substitution, value string) string {
	re, err := compile(s.Pattern)
	if err != nil {
		return value
	}
	return re.ReplaceAllString(value, expandTemplate(s.Replacement))
}

// expandTemplate turns \1, \g<1> and \g<name> back references into the
// ${1} / ${name} form regexp expects and keeps a literal $ literal.
func expandTemplate(repl string) string {
	if !strings.ContainsAny(repl, `\$`) {
		return repl
	}

	var b strings.Builder
	for i := 0; i < len(repl); i++ {
		c := repl[i]
		switch {
		case c == '$':
			b.WriteString("$$")
		case c != '\\' || i+1 == len(repl):
			b.WriteByte(c)
		case isDigit(repl[i+1]):
			j := i + 1
			for j < len(repl) && j < i+3 && isDigit(repl[j]) {
				j++
			}
			b.WriteString("${" + repl[i+1:j] + "}")
			i = j - 1
		case repl[i+1] == 'g' && i+2 < len(repl) && repl[i+2] == '<':
			end := strings.IndexByte(repl[i+3:], '>')
			if end < 0 {
				b.WriteByte(c)
				continue
			}
			b.WriteString("${" + repl[i+3:i+3+end] + "}")
			i += 3 + end
		case repl[i+1] == '\\':
			b.WriteByte('\\')
			i++
		case repl[i+1] == 'n':
			b.WriteByte('\n')
			i++
		case repl[i+1] == 't':
			b.WriteByte('\t')
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
