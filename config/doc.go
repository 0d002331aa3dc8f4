// Package config 提供 CreativeFlow 的配置管理功能。
//
// 配置按 默认值 → YAML 文件 → 环境变量 的顺序叠加，
// 环境变量键由前缀（默认 CREATIVEFLOW）与各层 env tag 拼接而成，
// 例如 CREATIVEFLOW_ASYNC_API_KEY、CREATIVEFLOW_JOB_STORE_REDIS_ADDR。
// Validate 汇总所有不一致项后一次性返回。
package config
