package xmlship

import "fmt"

// sanitizeElementName restricts element names to ASCII letters, digits, and
// underscores, with a non-digit first character. Collection and column names
// become XML element names, so anything outside this set is rejected rather
// than escaped.
func sanitizeElementName(name string) (string, error) {
	if name == "" {
		return "", ErrElementNameRequired
	}
	for i, r := range name {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		if r >= '0' && r <= '9' {
			if i == 0 {
				return "", fmt.Errorf("%w: %s", ErrInvalidElementName, name)
			}

			continue
		}

		return "", fmt.Errorf("%w: %s", ErrInvalidElementName, name)
	}

	return name, nil
}
