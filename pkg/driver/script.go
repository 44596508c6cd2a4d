package driver

import (
	"encoding/json"
	"fmt"
)

// countTextJS counts the smallest elements whose text contains the argument,
// case-insensitively and with whitespace collapsed. Text may span child
// elements, so "<p>Build <b>Error</b></p>" matches "Build Error" once, on the
// p. Script and style contents are not page text.
const countTextJS = `(text) => {
	const norm = (s) => s.replace(/\s+/g, ' ').toLowerCase();
	const needle = norm(String(text)).trim();
	const root = document.body || document.documentElement;
	if (!root || !needle) return 0;
	const skip = new Set(['SCRIPT', 'STYLE', 'NOSCRIPT', 'TEMPLATE']);
	let count = 0;
	const visit = (el) => {
		let own = '';
		let inChild = false;
		for (const node of el.childNodes) {
			if (node.nodeType === Node.TEXT_NODE) {
				own += node.nodeValue;
			} else if (node.nodeType === Node.ELEMENT_NODE && !skip.has(node.tagName)) {
				const child = visit(node);
				own += child.text;
				inChild = inChild || child.found;
			}
		}
		const found = norm(own).includes(needle);
		if (found && !inChild) count++;
		return {text: own, found: found};
	};
	visit(root);
	return count;
}`

// countTextExpression returns countTextJS applied to text as a standalone
// expression, for back-ends that evaluate expressions rather than functions.
func countTextExpression(text string) (string, error) {
	arg, err := json.Marshal(text)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s)(%s)", countTextJS, arg), nil
}
