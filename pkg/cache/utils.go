package cache

// GenerateKey joins a key family and an id.
func GenerateKey(prefix string, id string) string {
	return prefix + ":" + id
}
