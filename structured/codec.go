package structured

import (
	"encoding/base64"
	"fmt"
	"strconv"
)

// parseInt and parseFloat use the standard library's numeric grammar (not a
// third-party decimal/number library): no library in the retrieved corpus
// offers one, and strconv's grammar is what every Go program reaches for
// here.
func parseInt(b []byte) (int64, error) {
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStructured, err)
	}
	return v, nil
}

func parseFloat(b []byte) (float64, error) {
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStructured, err)
	}
	return v, nil
}

// decodeBase64/encodeBase64 use encoding/base64 directly: base64 has no
// independent third-party implementation anywhere in the retrieved corpus,
// so there is nothing to wire it to instead.
func decodeBase64(b []byte) ([]byte, error) {
	v, err := base64.StdEncoding.DecodeString(string(b))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStructured, err)
	}
	return v, nil
}

func encodeBase64(b []byte) []byte {
	return []byte(base64.StdEncoding.EncodeToString(b))
}
