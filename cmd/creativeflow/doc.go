// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package main 提供 CreativeFlow 命令行程序入口。

# 概述

cmd/creativeflow 是生成作业客户端的可执行入口，提供 image、video、
status、cancel、prompt、version 子命令。配置通过 --config 指定的 YAML
文件与 CREATIVEFLOW_* 环境变量加载，日志使用 zap，可选开启 OTel 追踪、
Prometheus /metrics 端点以及作业快照持久化（Redis 或数据库）。

# 主要能力

  - image / video：从实体目录（--catalog）组装提示词，或直接使用 --prompt，
    提交到 async 或 gemini 后端，默认轮询直到终态并输出 JSON 作业快照。
  - status：查询作业状态，--wait 轮询到终态。
  - cancel：取消作业，输出取消结果。
  - prompt：只组装提示词不提交，--list 列出可用模板。
  - 退出码：0 成功，1 运行错误，2 参数错误。
  - 构建注入：Version、BuildTime、GitCommit 通过 ldflags 设置。
*/
package main
