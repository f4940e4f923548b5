package model

// Style 风格目录条目，/image/styles 按目录顺序原样返回。
type Style struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
