// Copyright 2026 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package testutil 提供 CreativeFlow 测试的共享工具和辅助函数。

# 概述

testutil 包为各包的单元测试提供统一的辅助能力，避免重复实现
相似的测试基础设施。

# 核心能力

  - 上下文辅助: TestContext / CancelledContext，自动注册 Cleanup 防止泄漏
  - 断言工具: AssertErrorCode
  - 时间辅助: FixedClock

# 子包

  - fixtures: 品牌、产品、代言人与作业响应样例
  - mocks: EntityProvider 模拟与异步作业后端模拟服务器（JobServer）
*/
package testutil
