package auth

import "recipe-share-api/internal/domain"

// SameID 按规范化后的 id 比较，大小写/花括号写法不影响结果
func SameID(a, b string) bool {
	return a != "" && domain.CanonicalID(a) == domain.CanonicalID(b)
}

// AssertOwner 资源属主校验；不是本人返回 Forbidden
func AssertOwner(actorID, ownerID, msg string) error {
	if SameID(actorID, ownerID) {
		return nil
	}
	return domain.Forbidden(msg)
}
