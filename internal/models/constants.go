package models

// MediaKind — тип медиафайла предложения.
type MediaKind string

const (
	MediaKindImage    MediaKind = "IMAGE"
	MediaKindVideo    MediaKind = "VIDEO"
	MediaKindDocument MediaKind = "DOCUMENT"
)

func (MediaKind) EnumValues() []string {
	return []string{string(MediaKindImage), string(MediaKindVideo), string(MediaKindDocument)}
}

// PackageTier — уровень пакета услуг.
type PackageTier string

const (
	PackageTierBasic    PackageTier = "BASIC"
	PackageTierPremium  PackageTier = "PREMIUM"
	PackageTierStandard PackageTier = "STANDARD"
)

func (PackageTier) EnumValues() []string {
	return []string{string(PackageTierBasic), string(PackageTierPremium), string(PackageTierStandard)}
}
