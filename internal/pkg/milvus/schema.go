package milvus

import (
	"fmt"

	"github.com/milvus-io/milvus/client/v2/entity"
)

// FieldSchema 字段 Schema 定义
type FieldSchema struct {
	Name         string
	DataType     entity.FieldType
	IsPrimaryKey bool
	IsAutoID     bool
	Description  string
	Dimension    int // 向量维度
	MaxLength    int // 字符串最大长度
}

// CollectionSchema Collection Schema 定义
type CollectionSchema struct {
	Name               string
	Description        string
	Fields             []*FieldSchema
	EnableDynamicField bool
}

// Validate 验证字段 Schema
func (f *FieldSchema) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("field name cannot be empty")
	}

	if f.IsPrimaryKey {
		if f.DataType != entity.FieldTypeInt64 && f.DataType != entity.FieldTypeVarChar {
			return fmt.Errorf("primary key must be Int64 or VarChar type")
		}
	}

	if f.DataType == entity.FieldTypeFloatVector && f.Dimension <= 0 {
		return fmt.Errorf("vector field %s must have positive dimension", f.Name)
	}

	if f.DataType == entity.FieldTypeVarChar && f.MaxLength <= 0 {
		return fmt.Errorf("varchar field %s must have positive max_length", f.Name)
	}

	return nil
}

// ToEntity 转换为 entity.Field
func (f *FieldSchema) ToEntity() *entity.Field {
	field := entity.NewField().
		WithName(f.Name).
		WithDataType(f.DataType)

	if f.IsPrimaryKey {
		field.WithIsPrimaryKey(true)
	}
	if f.IsAutoID {
		field.WithIsAutoID(true)
	}
	if f.Description != "" {
		field.WithDescription(f.Description)
	}
	if f.DataType == entity.FieldTypeFloatVector && f.Dimension > 0 {
		field.WithDim(int64(f.Dimension))
	}
	if f.DataType == entity.FieldTypeVarChar && f.MaxLength > 0 {
		field.WithMaxLength(int64(f.MaxLength))
	}

	return field
}

// Validate 验证 Collection Schema
func (s *CollectionSchema) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("collection name cannot be empty")
	}

	if len(s.Name) > MaxCollectionNameLength {
		return fmt.Errorf("collection name exceeds %d characters", MaxCollectionNameLength)
	}

	if len(s.Fields) == 0 {
		return fmt.Errorf("collection must have at least one field")
	}

	hasPrimaryKey := false
	hasVector := false

	for _, field := range s.Fields {
		if err := field.Validate(); err != nil {
			return err
		}

		if field.IsPrimaryKey {
			if hasPrimaryKey {
				return fmt.Errorf("collection can only have one primary key")
			}
			hasPrimaryKey = true
		}

		if field.DataType == entity.FieldTypeFloatVector {
			hasVector = true
		}
	}

	if !hasPrimaryKey {
		return fmt.Errorf("collection must have a primary key")
	}

	if !hasVector {
		return fmt.Errorf("collection must have at least one vector field")
	}

	return nil
}

// ToEntity 转换为 entity.Schema
func (s *CollectionSchema) ToEntity() *entity.Schema {
	schema := &entity.Schema{
		CollectionName: s.Name,
		Description:    s.Description,
		Fields:         make([]*entity.Field, 0, len(s.Fields)),
	}

	for _, field := range s.Fields {
		schema.Fields = append(schema.Fields, field.ToEntity())
	}

	if s.EnableDynamicField {
		schema.EnableDynamicField = true
	}

	return schema
}

// GetPrimaryKey 获取主键字段
func (s *CollectionSchema) GetPrimaryKey() *FieldSchema {
	for _, field := range s.Fields {
		if field.IsPrimaryKey {
			return field
		}
	}
	return nil
}

// SchemaBuilder Schema 构建器
type SchemaBuilder struct {
	schema *CollectionSchema
}

// NewSchemaBuilder 创建 Schema 构建器
func NewSchemaBuilder(name, description string) *SchemaBuilder {
	return &SchemaBuilder{
		schema: &CollectionSchema{
			Name:        name,
			Description: description,
			Fields:      make([]*FieldSchema, 0),
		},
	}
}

// AddInt64Field 添加 Int64 字段
func (b *SchemaBuilder) AddInt64Field(name string, isPrimaryKey, isAutoID bool) *SchemaBuilder {
	b.schema.Fields = append(b.schema.Fields, &FieldSchema{
		Name:         name,
		DataType:     entity.FieldTypeInt64,
		IsPrimaryKey: isPrimaryKey,
		IsAutoID:     isAutoID,
	})
	return b
}

// AddVarCharField 添加 VarChar 字段
func (b *SchemaBuilder) AddVarCharField(name string, maxLength int, isPrimaryKey bool) *SchemaBuilder {
	b.schema.Fields = append(b.schema.Fields, &FieldSchema{
		Name:         name,
		DataType:     entity.FieldTypeVarChar,
		MaxLength:    maxLength,
		IsPrimaryKey: isPrimaryKey,
	})
	return b
}

// AddFloatVectorField 添加 FloatVector 字段
func (b *SchemaBuilder) AddFloatVectorField(name string, dimension int) *SchemaBuilder {
	b.schema.Fields = append(b.schema.Fields, &FieldSchema{
		Name:      name,
		DataType:  entity.FieldTypeFloatVector,
		Dimension: dimension,
	})
	return b
}

// AddJSONField 添加 JSON 字段
func (b *SchemaBuilder) AddJSONField(name string) *SchemaBuilder {
	b.schema.Fields = append(b.schema.Fields, &FieldSchema{
		Name:     name,
		DataType: entity.FieldTypeJSON,
	})
	return b
}

// EnableDynamicField 启用动态字段
func (b *SchemaBuilder) EnableDynamicField() *SchemaBuilder {
	b.schema.EnableDynamicField = true
	return b
}

// Build 验证并返回 Schema
func (b *SchemaBuilder) Build() (*CollectionSchema, error) {
	if err := b.schema.Validate(); err != nil {
		return nil, err
	}
	return b.schema, nil
}
