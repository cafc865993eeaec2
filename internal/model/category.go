package model

// Category 商品分类（丹麦语/英语双语路径）
// 全局共享引用数据：(path_da, path_en) 为自然键，核心逻辑只增不改不删
// 没有商品引用的孤儿分类是无害副产物，不视为错误
type Category struct {
	BaseModel

	// 短名称 = 路径最后一段
	NameDa string `gorm:"size:100"`
	NameEn string `gorm:"size:100"`

	// 完整路径，">" 分隔层级，仅做 trim 不做其他归一化
	PathDa string `gorm:"size:255;uniqueIndex:idx_category_path;not null"`
	PathEn string `gorm:"size:255;uniqueIndex:idx_category_path;not null"`

	Products []Product `gorm:"many2many:product_categories;"`
}

func (Category) TableName() string {
	return "categories"
}
