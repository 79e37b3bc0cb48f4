package connector

import (
	"fmt"

	"GameSenseIngest/internal/interfaces"

	"github.com/sirupsen/logrus"
)

// ========== 全局工厂函数注册表（各连接器init时自注册） ==========
var factoryRegistry = make(map[string]interfaces.Factory)

// Register 供连接器init函数调用，注册工厂函数
func Register(source string, factory interfaces.Factory) {
	if factory == nil {
		panic(fmt.Sprintf("数据源%s的工厂函数不能为nil", source))
	}
	if _, exists := factoryRegistry[source]; exists {
		logrus.Warnf("数据源%s的连接器已注册，将覆盖原有实现", source)
	}
	factoryRegistry[source] = factory
}

// GetFactory 获取指定数据源的工厂函数
func GetFactory(source string) (interfaces.Factory, bool) {
	factory, ok := factoryRegistry[source]
	return factory, ok
}

// ListSources 列出所有已注册的数据源
func ListSources() []string {
	var sources []string
	for s := range factoryRegistry {
		sources = append(sources, s)
	}
	return sources
}
