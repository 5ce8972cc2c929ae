package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type DietType string

const (
	DietVeg    DietType = "Veg"
	DietNonVeg DietType = "Non-Veg"
)

type MealType string

const (
	MealBreakfast MealType = "Breakfast"
	MealLunch     MealType = "Lunch"
	MealDinner    MealType = "Dinner"
	MealSnack     MealType = "Snack"
	MealDessert   MealType = "Dessert"
	MealBrunch    MealType = "Brunch"
)

// StringList 以 JSON 文本存储的有序字符串列表
type StringList []string

func (a StringList) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	// 不转义 & < >，LIKE 检索才能命中原文
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode([]string(a)); err != nil {
		return nil, err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func (a *StringList) Scan(value interface{}) error {
	if value == nil {
		*a = StringList{}
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("string list: unsupported type %T", value)
	}
	return json.Unmarshal(b, a)
}

type Recipe struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	Title         string     `gorm:"size:100;not null" json:"title" validate:"required,max=100"`
	Description   string     `gorm:"size:1000;not null" json:"description" validate:"required,max=1000"`
	Ingredients   StringList `gorm:"type:text;not null" json:"ingredients" validate:"required,min=1,dive,required"`
	Instructions  StringList `gorm:"type:text;not null" json:"instructions" validate:"required,min=1,dive,required"`
	DietType      DietType   `gorm:"size:16;not null;index" json:"type" validate:"required,oneof=Veg Non-Veg"`
	MealType      MealType   `gorm:"size:16;not null;index" json:"mealType" validate:"required,oneof=Breakfast Lunch Dinner Snack Dessert Brunch"`
	ImageURL      string     `gorm:"size:1024;not null" json:"imageUrl" validate:"required"`
	CreatedBy     string     `gorm:"size:36;not null;index" json:"createdById"`
	LikesCount    int64      `gorm:"not null;default:0;index" json:"likesCount"`
	CommentsCount int64      `gorm:"not null;default:0" json:"commentsCount"`
	SearchText    string     `gorm:"type:text;not null;default:''" json:"-"`
	CreatedAt     time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`

	Author *PublicUser `gorm:"-" json:"createdBy,omitempty"`
}

// SearchKey 搜索列：标题与每条配料按行拼接，大小写在这里折叠
func (r *Recipe) SearchKey() string {
	parts := make([]string, 0, len(r.Ingredients)+1)
	parts = append(parts, r.Title)
	parts = append(parts, r.Ingredients...)
	return strings.ToLower(strings.Join(parts, "\n"))
}

// RecipeLike 是 Recipe.likes 的一行（点赞关系的权威来源）
type RecipeLike struct {
	RecipeID  string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"primaryKey;size:36;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (RecipeLike) TableName() string { return "recipe_likes" }

// RecipePatch 部分更新；nil 表示不改
type RecipePatch struct {
	Title        *string
	Description  *string
	Ingredients  []string
	Instructions []string
	DietType     *DietType
	MealType     *MealType
	ImageURL     *string
}

func (p RecipePatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Ingredients == nil &&
		p.Instructions == nil && p.DietType == nil && p.MealType == nil && p.ImageURL == nil
}

// Apply 把补丁写到 r 上（不做校验）
func (p RecipePatch) Apply(r *Recipe) {
	if p.Title != nil {
		r.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		r.Description = strings.TrimSpace(*p.Description)
	}
	if p.Ingredients != nil {
		r.Ingredients = StringList(p.Ingredients)
	}
	if p.Instructions != nil {
		r.Instructions = StringList(p.Instructions)
	}
	if p.DietType != nil {
		r.DietType = *p.DietType
	}
	if p.MealType != nil {
		r.MealType = *p.MealType
	}
	if p.ImageURL != nil {
		r.ImageURL = *p.ImageURL
	}
}

// SortField 排序字段（已白名单化的 JSON 字段名）
type SortField struct {
	Field string
	Desc  bool
}

var sortableFields = map[string]struct{}{
	"createdAt": {}, "updatedAt": {}, "likesCount": {}, "commentsCount": {}, "title": {},
}

// ParseRecipeSort 支持预设名和 "-likesCount,createdAt" 形式的多字段列表
func ParseRecipeSort(raw string) ([]SortField, error) {
	switch strings.TrimSpace(raw) {
	case "", "newest":
		return []SortField{{Field: "createdAt", Desc: true}}, nil
	case "oldest":
		return []SortField{{Field: "createdAt"}}, nil
	case "most-liked", "popular":
		return []SortField{{Field: "likesCount", Desc: true}, {Field: "createdAt", Desc: true}}, nil
	case "most-commented":
		return []SortField{{Field: "commentsCount", Desc: true}, {Field: "createdAt", Desc: true}}, nil
	}
	var out []SortField
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f := SortField{Field: part}
		if strings.HasPrefix(part, "-") {
			f = SortField{Field: strings.TrimPrefix(part, "-"), Desc: true}
		} else if strings.HasPrefix(part, "+") {
			f.Field = strings.TrimPrefix(part, "+")
		}
		if _, ok := sortableFields[f.Field]; !ok {
			return nil, Validation("unsupported sort field: " + f.Field)
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, Validation("empty sort")
	}
	return out, nil
}

type RecipeFilter struct {
	DietType  DietType
	MealType  MealType
	Search    string
	CreatedBy string
	SavedBy   string
}

type RecipeQuery struct {
	Filter RecipeFilter
	Sort   []SortField
	Page   PageRequest
}

func (t DietType) Valid() bool { return t == DietVeg || t == DietNonVeg }

func (t MealType) Valid() bool {
	switch t {
	case MealBreakfast, MealLunch, MealDinner, MealSnack, MealDessert, MealBrunch:
		return true
	}
	return false
}
