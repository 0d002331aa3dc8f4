// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package types 提供 CreativeFlow 的全局共享类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 generation、jobstore、
config 与命令行提供统一的类型契约。跨包共享的实体、枚举和错误码均
定义于此，以避免循环依赖。

# 核心类型

  - Brand / Product / Talent：营销实体，提示词变量的来源
  - ReferenceImage / ReferenceType：参考图及其分类（物体类或人物类）
  - StylePreset：minimal、bold、lifestyle、promotional 四种风格
  - ContentType：image 或 video
  - OutputFormat：输出尺寸，Ratio 返回约分后的宽高比
  - Error / ErrorCode：结构化错误，含 HTTP 状态码、Retryable、Provider 标记

# 主要能力

  - 错误工具链：AsError / IsErrorCode / IsRetryable / GetErrorCode
  - 常用错误构造：NewValidationError / NewRateLimitError / NewPollingTimeoutError 等
  - 尺寸解析：ParseAspectRatio / OutputFormatByName
*/
package types
